// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Redis backs the quiz cache; nil when redis_addr is blank or
	// unreachable at startup.
	Redis *goredis.Client
}
