// Package template renders the configuration files hostctl installs: the
// Apache virtual host and the PHP-FPM pool of each host.
//
// Templates are embedded in the binary with go:embed and have the sprig
// function library available:
//
//	apache/vhost.tmpl
//	fpm/pool.tmpl
//
// # Rendering
//
//	r := template.NewRenderer()
//	content, err := r.VHost(template.VHostData{
//	    Hostname:     "shop.acme.test",
//	    Port:         80,
//	    User:         "shopacmetest",
//	    DocumentRoot: "/var/www/acme/shop.acme.test/web",
//	    LogsFolder:   "/var/www/acme/shop.acme.test/logs",
//	    Alias:        []string{"www.shop.acme.test"},
//	    PHPSocket:    "/run/php/php8.2-fpm-shopacmetest.sock",
//	})
//
// Each template is read and compiled on first use only. Rendering is
// otherwise pure and touches neither disk nor network. A missing or
// malformed template yields a TEMPLATE error.
package template
