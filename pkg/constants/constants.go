package constants

import (
	"github.com/go-playground/validator/v10"
)

type contextKey string

const (
	AppKey       contextKey = "app"
	PoolKey      contextKey = "pool"
	TxKey        contextKey = "tx"
	LoggerKey    contextKey = "logger"
	RequestStart contextKey = "requestStart"
	ActorKey     contextKey = "actor"
)

var Validate = validator.New(validator.WithRequiredStructEnabled())
