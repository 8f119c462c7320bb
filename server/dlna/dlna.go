// Package dlna implements the DLNA/UPnP MediaServer:1 HTTP surface and
// SSDP discovery engine: device and service descriptions, the
// ContentDirectory and ConnectionManager SOAP services, and the
// range-aware media streaming pipeline.
package dlna

import (
	"context"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/udlna/udlna/media"
	"github.com/udlna/udlna/media/metadata"
)

const (
	deviceType            = "urn:schemas-upnp-org:device:MediaServer:1"
	contentDirectoryType  = "urn:schemas-upnp-org:service:ContentDirectory:1"
	connectionManagerType = "urn:schemas-upnp-org:service:ConnectionManager:1"
	serverBanner          = "udlna/1.0"
)

// Router owns the HTTP surface and the SSDP engine sharing the same
// library snapshot and server identity.
type Router struct {
	library    *media.Library
	serverUUID uuid.UUID
	serverName string
	httpPort   int

	ssdp    *ssdpEngine
	running atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New builds a Router bound to lib, advertising serverName on
// httpPort. The server UUID is derived once from hostname+name so it
// survives restarts.
func New(lib *media.Library, hostname, serverName string, httpPort int) *Router {
	id := metadata.ServerUUID(hostname, serverName)
	r := &Router{
		library:    lib,
		serverUUID: id,
		serverName: serverName,
		httpPort:   httpPort,
	}
	r.ssdp = newSSDPEngine(id, httpPort, serverName)
	return r
}

// Routes builds the chi router for the HTTP surface described in the
// spec: device/service descriptions, SOAP control endpoints, and the
// media streaming routes. CORS is permissive since control points on
// the LAN (including browser-based ones) issue cross-origin Browse
// requests; the SOAP control endpoints carry a light per-IP rate limit
// to blunt malformed-SOAP hammering without touching /media/{id}.
func (r *Router) Routes() chi.Router {
	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "HEAD", "POST"},
		AllowedHeaders: []string{"SOAPAction", "Content-Type", "Range"},
	}))

	router.Get("/device.xml", r.handleDeviceDescription)
	router.Get("/cds/scpd.xml", r.handleCDSDescription)
	router.Get("/cms/scpd.xml", r.handleCMSDescription)

	router.Group(func(control chi.Router) {
		control.Use(httprate.LimitByIP(60, time.Minute))
		control.Post("/cds/control", r.handleCDSControl)
		control.Post("/cms/control", r.handleCMSControl)
	})

	router.Head("/media/{id}", r.handleMediaHead)
	router.Get("/media/{id}", r.handleMediaGet)

	return router
}

// MetricsHandler exposes the Prometheus registry tracking SSDP message
// counts and media bytes streamed. Not mounted on the public router by
// default — callers that want it wire it onto their own mux.
func (r *Router) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{})
}

// StartSSDP launches the discovery engine's background goroutines. It
// returns once interfaces are discovered and the receive sockets are
// bound; a bind failure (e.g. another UPnP daemon already listening)
// is fatal and returned to the caller.
func (r *Router) StartSSDP(ctx context.Context) error {
	r.mu.Lock()
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.mu.Unlock()

	if err := r.ssdp.start(ctx); err != nil {
		return err
	}
	r.running.Store(true)
	return nil
}

// StopSSDP sends byebye for every advertisement and releases sockets.
// The caller should bound this with its own timeout; the engine itself
// aims to complete within 1s.
func (r *Router) StopSSDP() {
	if !r.running.CompareAndSwap(true, false) {
		return
	}
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	r.ssdp.waitShutdown()
}

// activeIPv4Interfaces returns non-loopback IPv4 interfaces with at
// least one usable address, each paired with its CIDR network for
// subnet-match LOCATION selection.
func activeIPv4Interfaces() ([]ssdpInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	var active []ssdpInterface
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagUp == 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok || ipnet.IP.To4() == nil || ipnet.IP.IsLoopback() {
				continue
			}
			active = append(active, ssdpInterface{
				name: iface.Name,
				ip:   ipnet.IP.To4(),
				mask: ipnet.Mask,
			})
			break
		}
	}
	return active, nil
}
