package translate

import "go.opentelemetry.io/otel"

var tracer = otel.GetTracerProvider().Tracer("github.com/minios-linux/lokitd/translate")
