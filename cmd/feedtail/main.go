// Command feedtail tails the trade feed topic and prints each event
// as one JSON line. It is the debugging counterpart to the engine's
// Kafka egress.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog/log"
)

func main() {
	var (
		brokers = flag.String("brokers", "localhost:9092", "comma-separated Kafka brokers")
		topic   = flag.String("topic", "kestrel.trades", "trade feed topic")
		oldest  = flag.Bool("oldest", false, "start from the oldest offset instead of the newest")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := sarama.NewConfig()
	cfg.Consumer.Return.Errors = true

	consumer, err := sarama.NewConsumer(strings.Split(*brokers, ","), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("connect consumer")
	}
	defer consumer.Close()

	partitions, err := consumer.Partitions(*topic)
	if err != nil {
		log.Fatal().Err(err).Str("topic", *topic).Msg("list partitions")
	}

	offset := sarama.OffsetNewest
	if *oldest {
		offset = sarama.OffsetOldest
	}

	var wg sync.WaitGroup
	for _, p := range partitions {
		pc, err := consumer.ConsumePartition(*topic, p, offset)
		if err != nil {
			log.Fatal().Err(err).Int32("partition", p).Msg("consume partition")
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer pc.Close()
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-pc.Messages():
					if !ok {
						return
					}
					fmt.Println(string(msg.Value))
				case err, ok := <-pc.Errors():
					if !ok {
						return
					}
					log.Error().Err(err).Msg("consume")
				}
			}
		}()
	}
	wg.Wait()
}
