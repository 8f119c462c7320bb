package dlna

import "github.com/prometheus/client_golang/prometheus"

// metricsRegistry is a private registry, not the global default one —
// a process embedding multiple Routers (tests included) must not
// collide on metric registration.
var metricsRegistry = prometheus.NewRegistry()

var (
	ssdpMessagesSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "udlna_ssdp_messages_sent_total",
		Help: "SSDP datagrams sent, by message type.",
	}, []string{"type"})

	ssdpMessagesReceived = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "udlna_ssdp_messages_received_total",
		Help: "SSDP datagrams received, by message type.",
	}, []string{"type"})

	mediaBytesStreamed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "udlna_media_bytes_streamed_total",
		Help: "Bytes written to clients by the media streaming handler.",
	})
)

func init() {
	metricsRegistry.MustRegister(ssdpMessagesSent, ssdpMessagesReceived, mediaBytesStreamed)
}
