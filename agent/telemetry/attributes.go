package telemetry

import "go.opentelemetry.io/otel/attribute"

func attributeString(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

func attributeBool(key string, value bool) attribute.KeyValue {
	return attribute.Bool(key, value)
}
