package server

import (
	"fmt"
	"time"
)

// Config holds the frame stream server settings.
type Config struct {
	Addr            string        `mapstructure:"addr"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// SendBuffer is the number of messages queued per websocket client
	// before messages are dropped for it.
	SendBuffer int `mapstructure:"send_buffer"`

	// QUICAddr enables the QUIC frame stream when set. Without a certificate
	// pair a self-signed certificate is generated at startup.
	QUICAddr     string `mapstructure:"quic_addr"`
	QUICCertFile string `mapstructure:"quic_cert_file"`
	QUICKeyFile  string `mapstructure:"quic_key_file"`
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		WriteTimeout:    2 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		SendBuffer:      16,
	}
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr is empty", ErrInvalidConfig)
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("%w: write_timeout must be positive", ErrInvalidConfig)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: shutdown_timeout must be positive", ErrInvalidConfig)
	}
	if c.SendBuffer < 1 {
		return fmt.Errorf("%w: send_buffer must be at least 1", ErrInvalidConfig)
	}
	if (c.QUICCertFile == "") != (c.QUICKeyFile == "") {
		return fmt.Errorf("%w: quic_cert_file and quic_key_file go together", ErrInvalidConfig)
	}
	return nil
}
