package redis_client

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/splitfare/splitfare/pkg/util"
)

var Client *redis.Client

const defaultConnectionAddress = "localhost:6379"
const defaultConnectionPassword = ""
const defaultDatabase = 0

// Connect opens the shared Redis connection used for caching provider
// responses
func Connect() error {
	address := defaultConnectionAddress
	password := defaultConnectionPassword
	database := defaultDatabase

	env := util.GetEnvironmentVariables()

	if env["SPLITFARE_REDIS_ADDRESS"] != "" {
		address = env["SPLITFARE_REDIS_ADDRESS"]
	}

	if env["SPLITFARE_REDIS_PASSWORD"] != "" {
		password = env["SPLITFARE_REDIS_PASSWORD"]
	}

	if env["SPLITFARE_REDIS_DATABASE"] != "" {
		if n, err := strconv.Atoi(env["SPLITFARE_REDIS_DATABASE"]); err == nil {
			database = n
		} else {
			return err
		}
	}

	Client = redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	})

	statusCmd := Client.Ping(context.Background())
	if err := statusCmd.Err(); err != nil {
		Client = nil
		return err
	}

	return nil
}
