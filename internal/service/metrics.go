package service

import "github.com/prometheus/client_golang/prometheus"

// Metrics agrupa los contadores de dominio expuestos en /metrics.
type Metrics struct {
	OTPIssued       prometheus.Counter
	OTPVerified     prometheus.Counter
	ResetIssued     prometheus.Counter
	ResetCompleted  prometheus.Counter
	Bookings        prometheus.Counter
	BookingConflict prometheus.Counter
	TokensSwept     prometheus.Counter
	EmailFailures   *prometheus.CounterVec
}

// NewMetrics crea los contadores y los registra en reg cuando no es nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "support_desk",
			Name:      name,
			Help:      help,
		})
	}
	m := &Metrics{
		OTPIssued:       counter("otp_issued_total", "Login OTP codes issued."),
		OTPVerified:     counter("otp_verified_total", "Login OTP codes verified."),
		ResetIssued:     counter("password_reset_issued_total", "Password reset links issued."),
		ResetCompleted:  counter("password_reset_completed_total", "Password resets completed."),
		Bookings:        counter("bookings_created_total", "Bookings created."),
		BookingConflict: counter("booking_conflicts_total", "Booking attempts rejected for overlap."),
		TokensSwept:     counter("one_time_tokens_swept_total", "Expired one-time tokens deleted."),
		EmailFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "support_desk",
			Name:      "email_failures_total",
			Help:      "Outbound emails that failed to send.",
		}, []string{"kind"}),
	}
	if reg != nil {
		reg.MustRegister(
			m.OTPIssued,
			m.OTPVerified,
			m.ResetIssued,
			m.ResetCompleted,
			m.Bookings,
			m.BookingConflict,
			m.TokensSwept,
			m.EmailFailures,
		)
	}
	return m
}

func (m *Metrics) emailFailed(kind string) {
	m.EmailFailures.WithLabelValues(kind).Inc()
}
