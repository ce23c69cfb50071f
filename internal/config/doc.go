// Package config loads vbind.yaml.
//
// Values are layered, highest priority last:
//
//  1. built-in defaults
//  2. the config file (vbind.yaml, or --config)
//  3. VBIND_ environment variables, with "__" separating sections
//     (VBIND_SERVER__ADDR sets server.addr)
//  4. command-line flags that were explicitly set
//
// # Configuration File Structure
//
//	template: page.html
//	data: s3://my-bucket/data.yaml
//	methods:
//	  inc:
//	    - increment: count
//	  reset:
//	    - assign: form.name
//	      value: ""
//	    - toggle: dirty
//	server:
//	  addr: ":8080"
//	  metrics: true
//	log:
//	  level: debug
//	  format: json
//	s3:
//	  region: eu-west-1
//	reactive:
//	  max_cascade_depth: 50
//
// # Usage
//
//	cfg, err := config.Load("", cmd.Flags())
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config
