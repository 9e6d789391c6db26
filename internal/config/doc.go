// Package config provides configuration parsing for outlet projects.
//
// The configuration is stored in outlet.json at the project root.
// This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "name": "shop",
//	  "inspector": {
//	    "addr": "localhost:7070",
//	    "enabled": true
//	  },
//	  "manifest": {
//	    "output": "manifest.json",
//	    "pretty": true
//	  },
//	  "metrics": {
//	    "namespace": "shop"
//	  },
//	  "publish": {
//	    "bucket": "shop-manifests",
//	    "prefix": "prod/",
//	    "region": "us-east-1"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Inspector:", cfg.Inspector.Addr)
package config
