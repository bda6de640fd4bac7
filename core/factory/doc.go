// Package factory is a generic registry that builds modules from a type
// name and a map of raw settings. Report sinks and filter connectors both
// register here.
//
//	reg := factory.NewRegistry[metrics.ReportSink]()
//	reg.Register("influx", func(conf map[string]any) (metrics.ReportSink, error) {
//	    var c struct{ URL string `json:"url"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return newInfluxSink(c.URL), nil
//	})
//	sink, err := reg.Create(factory.ModuleConfig{Type: "influx", Conf: raw})
package factory
