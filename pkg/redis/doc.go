// Package redis connects the gateway to its shared Redis instance.
//
// Connect applies the configured dial, read and write timeouts and retries the
// initial ping, so a gateway started alongside Redis waits for it instead of
// failing. Healthcheck adapts a client to the readiness probe signature used
// by httpserver.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
package redis
