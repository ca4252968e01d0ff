// Package factory instantiates pluggable components from configuration.
// A component is described by a type string and a map of raw settings;
// factories decode the settings with Decode and return the implementation.
//
//	reg := factory.NewRegistry[store.Store]()
//	_ = reg.Register("jsonl", func(conf map[string]any) (store.Store, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return store.NewJSONLStore(c.Path)
//	})
//	s, err := reg.Create(factory.ModuleConfig{Type: "jsonl", Conf: map[string]any{"path": "audit.jsonl"}})
package factory
