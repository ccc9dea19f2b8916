// Package config loads typed configuration structs from environment
// variables. A .env file in the working directory is read once per process
// via godotenv, and struct parsing is delegated to caarlos0/env field tags.
// Each configuration type is parsed at most once and cached, so packages can
// call Load for their own config without coordinating startup order.
package config
