// Package main serves the REST API from AWS Lambda behind an API Gateway
// HTTP API.
package main

import (
	"context"
	"log"

	"github.com/Sk16er/Scholar-chat/infrastructure/config"
	"github.com/Sk16er/Scholar-chat/infrastructure/di"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var chiLambda *chiadapter.ChiLambdaV2

func init() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	container, err := di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize dependency container: %v", err)
	}

	router, ok := container.HTTPHandler.(*chi.Mux)
	if !ok {
		log.Fatalf("HTTP handler is %T, want *chi.Mux", container.HTTPHandler)
	}
	chiLambda = chiadapter.NewV2(router)

	container.Logger.Info("Lambda handler initialized",
		zap.String("environment", cfg.Environment),
	)
}

// Handler proxies an API Gateway request to the router
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return chiLambda.ProxyWithContextV2(ctx, req)
}

func main() {
	lambda.Start(Handler)
}
