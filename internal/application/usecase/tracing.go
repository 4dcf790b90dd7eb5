package usecase

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("github.com/bibbank/fraudscore/internal/application/usecase")
