package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RoomsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playroom_rooms_active",
			Help: "Rooms currently held in the registry",
		},
	)

	MembersConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playroom_members_connected",
			Help: "Members with a bound transport",
		},
	)

	RoomsClosed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playroom_rooms_closed_total",
			Help: "Rooms closed, by reason",
		},
		[]string{"reason"},
	)

	// outcome is "handled" or "dropped"
	MessagesInbound = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playroom_messages_inbound_total",
			Help: "Inbound channel messages by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	FramesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "playroom_frames_dropped_total",
			Help: "Outbound frames dropped on backpressure or closed transports",
		},
	)

	LifecycleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playroom_lifecycle_errors_total",
			Help: "Failed lifecycle calls by operation",
		},
		[]string{"op"},
	)
)
