// Command probe waits for the arena server's health endpoint to report
// SERVING. Container orchestrators use it as a readiness check.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/louisbranch/gridfall/internal/platform/config"
	platformgrpc "github.com/louisbranch/gridfall/internal/platform/grpc"
)

var (
	addr    = flag.String("addr", "localhost:9090", "health endpoint address")
	timeout = flag.Duration("timeout", 30*time.Second, "how long to wait before giving up")
	quiet   = flag.Bool("quiet", false, "suppress progress logs")
)

func main() {
	flag.Parse()
	log.SetPrefix("[PROBE] ")

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, err := platformgrpc.Dial(*addr)
	if err != nil {
		config.Exitf("dial %s: %v", *addr, err)
	}
	defer conn.Close()

	logf := log.Printf
	if *quiet {
		logf = nil
	}
	if err := platformgrpc.WaitForHealth(ctx, conn, "", logf); err != nil {
		config.Exitf("%s not serving: %v", *addr, err)
	}
	log.Printf("%s is serving", *addr)
}
