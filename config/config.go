package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port string
	}
	Database struct {
		DSN string
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	JWT struct {
		Secret string
	}
	Game struct {
		Decks           int     // number of 52-card decks in the shoe
		SeatCount       int     // seats per table
		MinBet          string  // decimal string, e.g. "10"
		MaxBet          string  // decimal string, e.g. "500"
		Penetration     float64 // reshuffle when remaining/full drops below this
		BlackjackPayout string  // total returned per unit staked, e.g. "2.5"
		TurnSeconds     int     // turn timer; 0 disables forced stand
		RoomTTLSeconds  int     // redis TTL for persisted rooms
	}
}

var C Config

func Load() {
	viper.SetConfigFile("config/config.yaml")

	// house-rule defaults; config.yaml overrides per deployment
	viper.SetDefault("game.decks", 1)
	viper.SetDefault("game.seatcount", 6)
	viper.SetDefault("game.minbet", "10")
	viper.SetDefault("game.maxbet", "500")
	viper.SetDefault("game.penetration", 0.25)
	viper.SetDefault("game.blackjackpayout", "2.5")
	viper.SetDefault("game.turnseconds", 30)
	viper.SetDefault("game.roomttlseconds", 3600)

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Failed to read config: %v", err)
	}
	if err := viper.Unmarshal(&C); err != nil {
		log.Fatalf("Failed to parse config: %v", err)
	}
}
