// Command alertworker builds one named stream's alert ingestion worker
// against MongoDB and a schema registry, logs its queue names, and
// waits for SIGINT or SIGTERM. No packet source is attached here, so
// it does not call Worker.ProcessPacket.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/lsst-broker/alertworker/clog"
	"github.com/lsst-broker/alertworker/enrich"
	"github.com/lsst-broker/alertworker/internal/config"
	"github.com/lsst-broker/alertworker/registry"
	"github.com/lsst-broker/alertworker/store"
	"github.com/lsst-broker/alertworker/worker"
)

func main() {
	configPath := flag.String("config", "alertworker.yaml", "path to the worker's YAML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Fatal(err)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := clog.NewLogger("[alertworker] ")
	logger.LogMode(true)

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.Store.URI))
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.Store.Database)
	names := worker.DeriveStreamNames(cfg.Stream)

	catalogs := map[string]*mongo.Collection{}
	for _, name := range cfg.Crossmatch.Catalogs {
		catalogs[name] = db.Collection(name)
	}

	w, err := worker.New(ctx, worker.Config{
		StreamLabel: cfg.Stream,
		Magnitude:   cfg.MagnitudeConfig(),
	}, worker.Dependencies{
		Transport: registry.NewHTTPTransport(cfg.Registry.BaseURL, nil),
		Store:     mongoStoreProbe{db},
		Collections: store.Collections{
			Alerts:  store.MongoAlertCollection{Collection: db.Collection(names.AlertsCollection)},
			Cutouts: store.MongoCutoutCollection{Collection: db.Collection(names.CutoutsCollection)},
			Aux:     store.MongoAuxCollection{Collection: db.Collection(names.AuxCollection)},
		},
		Crossmatcher: enrich.MongoCatalogCrossmatcher{
			Catalogs:     catalogs,
			RadiusMeters: 2.0,
			Limit:        5,
		},
		Log: logger,
	})
	if err != nil {
		return err
	}

	logger.Debug("ready: input=%s output=%s", w.Names().InputQueue, w.Names().OutputQueue)

	<-ctx.Done()
	logger.Debug("shutting down")
	return nil
}

type mongoStoreProbe struct {
	db *mongo.Database
}

func (p mongoStoreProbe) ListCollectionNames(ctx context.Context) ([]string, error) {
	return p.db.ListCollectionNames(ctx, struct{}{})
}
