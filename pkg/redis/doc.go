// Package redis connects to Redis with go-redis.
//
// Connect parses a redis:// URL from Config and pings the server with
// retries. Healthcheck adapts any client into a readiness check for
// httpserver.HealthCheckHandler.
//
//	client, err := redis.Connect(ctx, cfg.Redis)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
package redis
