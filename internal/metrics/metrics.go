package metrics

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	SuccessfulRequests *prometheus.CounterVec
	BadRequests        *prometheus.CounterVec
	PostsCreated       *prometheus.CounterVec
	CommentsCreated    *prometheus.CounterVec
	FollowRequests     *prometheus.CounterVec
	PermissionDenied   *prometheus.CounterVec
}

// New creates the API counters and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SuccessfulRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "successful_request",
				Help: "Total number of successful (2xx) HTTP requests",
			},
			[]string{"path"},
		),
		BadRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "unsuccessful_request",
				Help: "Total number of unsuccessful (4xx) HTTP requests",
			},
			[]string{"path"},
		),
		PostsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "posts_created",
				Help: "Total number of successfully created posts",
			},
			[]string{"path"},
		),
		CommentsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "comments_created",
				Help: "Total number of successfully created comments",
			},
			[]string{"path"},
		),
		FollowRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "successful_follows",
				Help: "Total number of successfully created follow edges",
			},
			[]string{"path"},
		),
		PermissionDenied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "permission_denied",
				Help: "Total number of modifications rejected for non-owners",
			},
			[]string{"resource"},
		),
	}

	reg.MustRegister(m.SuccessfulRequests)
	reg.MustRegister(m.BadRequests)
	reg.MustRegister(m.PostsCreated)
	reg.MustRegister(m.CommentsCreated)
	reg.MustRegister(m.FollowRequests)
	reg.MustRegister(m.PermissionDenied)

	return m
}
