package wire

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for compile and serialization events.
var (
	SignalTypeRegistered      = capitan.NewSignal("wire.type.registered", "Top-level type registered")
	SignalStrategyCompiled    = capitan.NewSignal("wire.strategy.compiled", "Strategy compiled for a context key")
	SignalSerializeStart      = capitan.NewSignal("wire.serialize.start", "Serialize operation beginning")
	SignalSerializeComplete   = capitan.NewSignal("wire.serialize.complete", "Serialize operation finished")
	SignalDeserializeStart    = capitan.NewSignal("wire.deserialize.start", "Deserialize operation beginning")
	SignalDeserializeComplete = capitan.NewSignal("wire.deserialize.complete", "Deserialize operation finished")
)

// Keys for typed event data.
var (
	KeyTypeName   = capitan.NewStringKey("type_name")
	KeyContextKey = capitan.NewStringKey("context_key")
	KeyHandler    = capitan.NewStringKey("handler")
	KeyStrategies = capitan.NewIntKey("strategies")
	KeySize       = capitan.NewIntKey("size")
	KeyDuration   = capitan.NewDurationKey("duration")
	KeyError      = capitan.NewErrorKey("error")
)

// emitTypeRegistered emits an event when a top-level type is registered.
func emitTypeRegistered(ctx context.Context, typeName string, strategies int) {
	capitan.Emit(ctx, SignalTypeRegistered,
		KeyTypeName.Field(typeName),
		KeyStrategies.Field(strategies),
	)
}

// emitStrategyCompiled emits an event for each compiled strategy.
func emitStrategyCompiled(ctx context.Context, key ContextKey, handler string) {
	capitan.Emit(ctx, SignalStrategyCompiled,
		KeyTypeName.Field(key.Type.String()),
		KeyContextKey.Field(key.String()),
		KeyHandler.Field(handler),
	)
}

func emitSerializeStart(ctx context.Context, typeName string) {
	capitan.Emit(ctx, SignalSerializeStart,
		KeyTypeName.Field(typeName),
	)
}

func emitSerializeComplete(ctx context.Context, typeName string, size int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeySize.Field(size),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalSerializeComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalSerializeComplete, fields...)
	}
}

func emitDeserializeStart(ctx context.Context, typeName string, size int) {
	capitan.Emit(ctx, SignalDeserializeStart,
		KeyTypeName.Field(typeName),
		KeySize.Field(size),
	)
}

func emitDeserializeComplete(ctx context.Context, typeName string, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalDeserializeComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalDeserializeComplete, fields...)
	}
}
