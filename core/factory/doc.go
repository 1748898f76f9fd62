// Package factory provides a small generic registry used to instantiate
// pluggable modules (metrics sinks, plan publishers) from configuration.
// Modules are defined by a type string and a map of raw settings. Factories
// decode the settings into typed structs and return the concrete
// implementation.
//
// Example usage:
//
//	reg := factory.NewRegistry[notify.Publisher]()
//	reg.Register("mqtt", func(conf map[string]any) (notify.Publisher, error) {
//	    var c struct{ Broker string `json:"broker"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return newPublisher(c.Broker)
//	})
//	p, err := reg.Create(factory.ModuleConfig{Type: "mqtt", Conf: map[string]any{"broker": "tcp://localhost:1883"}})
package factory
