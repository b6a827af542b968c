package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer

	// BaseURL is the public URL of this service, used to build the
	// webhook callback the gateway posts to.
	BaseURL string `env:"BASE_URL"`
	// FrontendURL hosts the success/cancel return pages.
	FrontendURL string `env:"FRONTEND_URL"`
	DatabaseURL string `env:"DATABASE_URL"`

	Auth    Auth        `envPrefix:"AUTH_"`
	Gateway RupantorPay `envPrefix:"RUPANTORPAY_"`
	Payment Payment     `envPrefix:"PAYMENT_"`
}

type RupantorPay struct {
	BaseApiURL string        `env:"BASE_API_URL" envDefault:"https://payment.rupantorpay.com"`
	APIKey     string        `env:"API_KEY"`
	Timeout    time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

type Payment struct {
	Currency           string        `env:"CURRENCY" envDefault:"BDT"`
	MinDonationAmount  int64         `env:"MIN_DONATION_AMOUNT" envDefault:"10"`
	SubscriptionFee    int64         `env:"SUBSCRIPTION_FEE" envDefault:"100"`
	SubscriptionPeriod time.Duration `env:"SUBSCRIPTION_PERIOD" envDefault:"720h"` // 30 days
	PendingTTL         time.Duration `env:"PENDING_TTL" envDefault:"24h"`
	SweepInterval      time.Duration `env:"SWEEP_INTERVAL" envDefault:"1h"`
}

type Auth struct {
	JWTSecret string `env:"JWT_SECRET"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
