// Command kestrel runs the matching engine over the line protocol:
// commands on stdin, trades and snapshots on stdout. Optional flags
// enable the Kafka trade feed and the Prometheus endpoint.
package main

import (
	"bufio"
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"kestrel/infra/kafka"
	"kestrel/infra/metrics"
	"kestrel/jobs/broadcaster"
	"kestrel/service"
	"kestrel/wire"
)

func main() {
	var (
		brokers      = flag.String("brokers", "", "comma-separated Kafka brokers for the trade feed (empty disables)")
		topic        = flag.String("topic", "kestrel.trades", "Kafka topic for the trade feed")
		metricsAddr  = flag.String("metrics", "", "Prometheus listen address, e.g. :9100 (empty disables)")
		feedInterval = flag.Duration("feed-interval", 5*time.Millisecond, "trade feed drain interval")
		pretty       = flag.Bool("pretty", false, "human-readable log output")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	log.Logger = log.Output(os.Stderr)
	if *pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *metricsAddr != "" {
		go func() {
			if err := metrics.Serve(*metricsAddr); err != nil {
				log.Error().Err(err).Msg("metrics server exited")
			}
		}()
	}

	var feed *broadcaster.Broadcaster
	var feedDone chan struct{}
	if *brokers != "" {
		producer := kafka.NewProducer(strings.Split(*brokers, ","), *topic)
		feed = broadcaster.New(producer, *feedInterval)
		feedDone = make(chan struct{})
		go func() {
			defer close(feedDone)
			feed.Run(ctx)
		}()
	}

	var disp *service.Dispatcher
	if feed != nil {
		disp = service.NewDispatcher(service.DefaultConfig(), os.Stdout, feed)
	} else {
		disp = service.NewDispatcher(service.DefaultConfig(), os.Stdout, nil)
	}

	sc := bufio.NewScanner(os.Stdin)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		symbol, rest, ok := strings.Cut(strings.TrimSpace(line), " ")
		if !ok || symbol == "" {
			continue
		}
		cmd, ok := wire.ParseLine(rest)
		if !ok {
			continue
		}
		disp.Submit(symbol, cmd)

		select {
		case <-ctx.Done():
		default:
			continue
		}
		break
	}
	if err := sc.Err(); err != nil {
		log.Error().Err(err).Msg("read stdin")
	}

	if err := disp.Close(); err != nil {
		log.Error().Err(err).Msg("engine shutdown")
	}
	stop()
	if feed != nil {
		<-feedDone
		if err := feed.Close(); err != nil {
			log.Error().Err(err).Msg("close trade feed")
		}
	}
}
