package wire

import "reflect"

// Override interfaces allow types to bypass the built-in handlers.
//
// A type implementing StrategyProvider is compiled by calling WireStrategy on
// its zero value. The returned strategy must serve exactly that type and is
// registered contextless: member flags never apply to it.

// StrategyProvider supplies an explicit strategy for its own type.
type StrategyProvider interface {
	WireStrategy() Strategy
}

var strategyProviderType = reflect.TypeFor[StrategyProvider]()

// providedStrategy instantiates the strategy declared by t, if any.
func providedStrategy(t reflect.Type) (Strategy, bool) {
	if t.Kind() == reflect.Interface || t.Kind() == reflect.Pointer {
		return nil, false
	}
	if t.Implements(strategyProviderType) {
		return reflect.Zero(t).Interface().(StrategyProvider).WireStrategy(), true
	}
	if reflect.PointerTo(t).Implements(strategyProviderType) {
		return reflect.New(t).Interface().(StrategyProvider).WireStrategy(), true
	}
	return nil, false
}

func declaresStrategy(t reflect.Type) bool {
	if t.Kind() == reflect.Interface || t.Kind() == reflect.Pointer {
		return false
	}
	return t.Implements(strategyProviderType) || reflect.PointerTo(t).Implements(strategyProviderType)
}
