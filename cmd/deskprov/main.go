// Package main is the entrypoint for the deskprov provisioning service.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/directoryservice"
	"github.com/aws/aws-sdk-go-v2/service/directoryservicedata"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodbstreams"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/innovatech/deskprov/internal/backend"
	"github.com/innovatech/deskprov/internal/config"
	"github.com/innovatech/deskprov/internal/identity"
	"github.com/innovatech/deskprov/internal/orchestrator"
	"github.com/innovatech/deskprov/internal/platform/compute"
	"github.com/innovatech/deskprov/internal/platform/dynamo"
	sesmailer "github.com/innovatech/deskprov/internal/platform/ses"
	"github.com/innovatech/deskprov/internal/preflight"
	"github.com/innovatech/deskprov/internal/stream"
)

// Version is set at build time.
var Version = "dev"

func main() {
	var skipPreflight bool
	flag.BoolVar(&skipPreflight, "skip-preflight", false, "Skip startup resource checks.")
	flag.Parse()

	log.Printf("[Main] Starting deskprov %s", Version)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Main] Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		log.Fatalf("[Main] Failed to load AWS configuration: %v", err)
	}

	store := dynamo.NewStore(dynamodb.NewFromConfig(awsCfg), cfg.TableName)
	provisioner := compute.NewProvisioner(ec2.NewFromConfig(awsCfg))
	mailer := sesmailer.NewMailer(sesv2.NewFromConfig(awsCfg), cfg.SenderEmail)
	snsClient := sns.NewFromConfig(awsCfg)

	be, err := backend.New(cfg)
	if err != nil {
		log.Fatalf("[Main] Failed to configure backend: %v", err)
	}

	var idp identity.Provisioner
	switch cfg.Backend {
	case config.BackendLocal:
		idp = identity.Noop{}
	case config.BackendManagedAD:
		idp = identity.NewDirectory(
			directoryservicedata.NewFromConfig(awsCfg),
			directoryservice.NewFromConfig(awsCfg),
			cfg.Directory.DirectoryID,
		)
	default:
		idp = identity.NewPublisher(snsClient, cfg.Directory.TopicARN)
	}

	if !skipPreflight {
		checker := preflight.NewChecker(
			cfg, store, mailer,
			ec2.NewFromConfig(awsCfg),
			snsClient,
			secretsmanager.NewFromConfig(awsCfg),
		)
		checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := checker.Run(checkCtx)
		cancel()
		if err != nil {
			log.Fatalf("[Main] %v", err)
		}
	}

	if cfg.KeyName != "" {
		if err := provisioner.EnsureKeyPair(ctx, cfg.KeyName); err != nil {
			log.Fatalf("[Main] Failed to ensure key pair %s: %v", cfg.KeyName, err)
		}
	}

	orch := orchestrator.New(cfg, store, be, idp, provisioner, mailer)
	consumer := stream.NewConsumer(dynamodbstreams.NewFromConfig(awsCfg), orch, cfg.StreamARN, cfg.StreamPollDelay)

	go serveMetrics(cfg.MetricsAddr)

	log.Printf("[Main] Backend %s, table %s, region %s", cfg.Backend, cfg.TableName, cfg.Region)
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("[Main] Consumer stopped: %v", err)
	}
	log.Printf("[Main] Shutdown complete")
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	log.Printf("[Main] Serving metrics on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("[Main] Metrics server stopped: %v", err)
		os.Exit(1)
	}
}
