// Package config manages the hostctl configuration: filesystem conventions
// for client and host trees, the Apache site registry, PHP-FPM pool settings
// and the record store backend.
//
// Configuration is read from /etc/hostctl/config.yaml (or the file named by
// --config / HOSTCTL_CONFIG) through viper, layered over platform defaults.
// Every key may be overridden by an environment variable with the HOSTCTL_
// prefix and dots replaced by underscores.
//
// Example config.yaml:
//
//	paths:
//	  www: /var/www
//	  vhost: /var/www/vhost
//	  backup: /var/www/backup
//	apache:
//	  available: /etc/apache2/sites-available
//	  enabled: /etc/apache2/sites-enabled
//	  service: apache2
//	  port: 80
//	php:
//	  version: "8.2"
//	  pool_dir: /etc/php/8.2/fpm/pool.d
//	  max_children: 5
//	store:
//	  driver: sqlite
//	  path: /var/lib/hostctl/hostctl.db
//
// Environment override:
//
//	HOSTCTL_STORE_DRIVER=redis HOSTCTL_STORE_REDIS_ADDR=10.0.0.5:6379 hostctl host list
//
// # Usage
//
//	cfg, err := config.Load(config.Path(flagPath), config.ForPlatform(detected))
//	if err != nil {
//	    return err
//	}
//
//	// write the effective defaults for editing
//	err = config.New().Save(config.DefaultPath)
//
// Config values are read once per command and are not safe for concurrent
// mutation.
package config
