package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/dgraph-io/ristretto"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/config"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/edge"
	chaosEngine "github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/engine"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/latency"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/chaos/random"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/db/elasticsearch/bootstrapper"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/db/elasticsearch/client"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/db/write_buffer"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/ids"
	marketService "github.com/thedogwiththedataonit/opensea-demo-sub000/internal/market/service"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/server/router"
	traceModel "github.com/thedogwiththedataonit/opensea-demo-sub000/internal/trace/model"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/trace/sink"
	traceService "github.com/thedogwiththedataonit/opensea-demo-sub000/internal/trace/service"
	protoTrace "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	_ "google.golang.org/grpc/encoding/gzip"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	var configFile string
	var listenAddress string
	var otlpEndpoint string
	var elasticsearchAddress string
	var logFile string

	rootCmd := &cobra.Command{
		Use:   "gateway",
		Short: "Demo marketplace gateway with synthetic fault injection and trace simulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configFile, listenAddress, otlpEndpoint, elasticsearchAddress, logFile)
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "Path to the YAML configuration file")
	rootCmd.Flags().StringVar(&listenAddress, "listen", ":8080", "Address for the HTTP server")
	rootCmd.Flags().StringVar(&otlpEndpoint, "otlp-endpoint", "", "OTLP/gRPC collector endpoint for trace export")
	rootCmd.Flags().StringVar(&elasticsearchAddress, "elasticsearch-url", "", "Elasticsearch address for span indexing")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "Log file path with rotation; empty logs to stderr only")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(
	configFile string,
	listenAddress string,
	otlpEndpoint string,
	elasticsearchAddress string,
	logFile string,
) error {
	logger, err := newLogger(logFile)
	if err != nil {
		return fmt.Errorf("unable to build logger: %w", err)
	}
	defer logger.Sync()

	store := config.NewFaultConfigStoreImpl(logger)
	if configFile != "" {
		v := viper.New()
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read configuration file: %w", err)
		}
		if err := config.ApplyFaultConfigFile(v, store, logger); err != nil {
			return err
		}
		config.WatchFaultConfigFile(v, store, logger)
	}

	randSource := random.NewTimeSeededSource()
	decisionEngine := chaosEngine.NewFaultDecisionEngineImpl(store, randSource, logger)
	latencySimulator := latency.NewLatencySimulatorImpl(decisionEngine, store, randSource, logger)

	ristrettoCache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: (1 << 20) * 10,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return fmt.Errorf("unable to create trace cache: %w", err)
	}
	traceCache := sink.NewRecentTraceCache(ristrettoCache, logger)
	sinks := []traceService.TraceSink{traceCache}

	if otlpEndpoint != "" {
		conn, err := grpc.NewClient(otlpEndpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return fmt.Errorf("unable to connect to OTLP collector: %w", err)
		}
		sinks = append(sinks, sink.NewOTLPTraceSink(protoTrace.NewTraceServiceClient(conn), logger))
		logger.Info("Exporting traces over OTLP", zap.String("endpoint", otlpEndpoint))
	}

	if elasticsearchAddress != "" {
		es, err := elasticsearch.NewClient(elasticsearch.Config{
			Addresses: []string{elasticsearchAddress},
		})
		if err != nil {
			return fmt.Errorf("unable to create elasticsearch client: %w", err)
		}
		bs := bootstrapper.NewBootstrapper(es, logger)
		if err := bs.BootstrapElasticsearch(); err != nil {
			logger.Error("Failed to bootstrap elasticsearch", zap.Error(err))
		}
		writer := client.NewSpanDocumentWriterImpl(es, client.Async)
		buffer := write_buffer.NewDatabaseWriteBufferImpl[*traceModel.Span](
			writer,
			bootstrapper.SpanIndexName,
			logger,
		)
		sinks = append(sinks, sink.NewElasticsearchTraceSink(buffer, logger))
		logger.Info("Indexing spans into elasticsearch", zap.String("address", elasticsearchAddress))
	}

	recorder := traceService.NewTraceRecorderImpl(randSource, sink.NewFanOutSink(sinks...), logger)
	collectionService := marketService.NewCollectionServiceImpl(
		decisionEngine,
		latencySimulator,
		recorder,
		randSource,
		logger,
	)
	edgeGateway := edge.NewEdgeGatewayImpl(store, randSource, edge.DefaultConfig(), logger)

	r := router.CreateRouter(
		store,
		decisionEngine,
		edgeGateway,
		collectionService,
		recorder,
		traceCache,
		ids.NewGenerator(),
		logger,
	)
	logger.Info("Starting gateway", zap.String("address", listenAddress))
	return http.ListenAndServe(listenAddress, r)
}

func newLogger(logFile string) (*zap.Logger, error) {
	if logFile == "" {
		return zap.NewProduction()
	}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	fileWriter := zapcore.AddSync(&lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
	})
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), fileWriter, zapcore.InfoLevel)
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stderr),
		zapcore.InfoLevel,
	)
	return zap.New(zapcore.NewTee(fileCore, consoleCore)), nil
}
