package ioc

import (
	"context"
	"log"
	"time"

	"github.com/moby/moby/client"
	"github.com/to404hanga/pkg404/gotools/retry"
)

// InitDockerClient builds a Docker API client and verifies the daemon is
// reachable. The daemon may still be starting when this service comes up in
// compose, so the ping is retried before giving up.
func InitDockerClient() *client.Client {
	c, err := client.New(client.WithAPIVersionNegotiation())
	if err != nil {
		log.Panicf("create docker client fail, err: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = retry.Do(ctx, func() error {
		_, err := c.Ping(ctx, client.PingOptions{})
		return err
	}); err != nil {
		log.Panicf("ping docker daemon fail, err: %v", err)
	}
	return c
}
