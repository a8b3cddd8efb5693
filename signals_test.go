package wire

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestEmitTypeRegistered(_ *testing.T) {
	// Should not panic
	emitTypeRegistered(context.Background(), "TestType", 3)
}

func TestEmitStrategyCompiled(_ *testing.T) {
	emitStrategyCompiled(context.Background(), ContextKey{Flags: FlagReverse, Type: reflect.TypeFor[uint16]()}, "primitive")
}

func TestEmitSerializeStart(_ *testing.T) {
	emitSerializeStart(context.Background(), "TestType")
}

func TestEmitSerializeComplete_Success(_ *testing.T) {
	emitSerializeComplete(context.Background(), "TestType", 128, 100*time.Millisecond, nil)
}

func TestEmitSerializeComplete_Error(_ *testing.T) {
	emitSerializeComplete(context.Background(), "TestType", 0, 100*time.Millisecond, errors.New("test error"))
}

func TestEmitDeserializeStart(_ *testing.T) {
	emitDeserializeStart(context.Background(), "TestType", 64)
}

func TestEmitDeserializeComplete_Success(_ *testing.T) {
	emitDeserializeComplete(context.Background(), "TestType", 100*time.Millisecond, nil)
}

func TestEmitDeserializeComplete_Error(_ *testing.T) {
	emitDeserializeComplete(context.Background(), "TestType", 100*time.Millisecond, errors.New("test error"))
}

func TestSignalVariables(t *testing.T) {
	// Verify signals are properly initialized
	signals := []struct {
		name   string
		signal interface{}
	}{
		{"SignalTypeRegistered", SignalTypeRegistered},
		{"SignalStrategyCompiled", SignalStrategyCompiled},
		{"SignalSerializeStart", SignalSerializeStart},
		{"SignalSerializeComplete", SignalSerializeComplete},
		{"SignalDeserializeStart", SignalDeserializeStart},
		{"SignalDeserializeComplete", SignalDeserializeComplete},
	}

	for _, s := range signals {
		if s.signal == nil {
			t.Errorf("%s is nil", s.name)
		}
	}
}

func TestKeyVariables(t *testing.T) {
	// Verify keys are properly initialized
	keys := []struct {
		name string
		key  interface{}
	}{
		{"KeyTypeName", KeyTypeName},
		{"KeyContextKey", KeyContextKey},
		{"KeyHandler", KeyHandler},
		{"KeyStrategies", KeyStrategies},
		{"KeySize", KeySize},
		{"KeyDuration", KeyDuration},
		{"KeyError", KeyError},
	}

	for _, k := range keys {
		if k.key == nil {
			t.Errorf("%s is nil", k.name)
		}
	}
}
