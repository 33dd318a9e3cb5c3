// Command revocations lists the tokens currently held in the Redis
// revocation registry.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/baechuer/docvault/internal/infrastructure/redis"
)

func main() {
	var (
		addr    = flag.String("addr", "127.0.0.1:6379", "redis address host:port")
		pass    = flag.String("pass", "", "redis password")
		db      = flag.Int("db", 0, "redis db")
		count   = flag.Int64("count", 200, "SCAN COUNT hint")
		limit   = flag.Int("limit", 0, "stop after this many entries (0 = all)")
		timeout = flag.Duration("timeout", 10*time.Second, "overall timeout")
	)
	flag.Parse()

	c := redis.New(*addr, *pass, *db)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "redis ping failed: %v\n", err)
		os.Exit(1)
	}

	entries, err := redis.NewRevocationRegistry(c).Entries(ctx, *count, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scan failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Connected: addr=%s db=%d\n", *addr, *db)
	for i, e := range entries {
		fmt.Printf("%d) %s\n   ttl=%s\n", i+1, e.Digest, e.TTL.Round(time.Second))
	}
	if len(entries) == 0 {
		fmt.Println("No revoked tokens.")
	}
}
