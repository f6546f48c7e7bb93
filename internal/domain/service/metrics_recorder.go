package service

// MetricsRecorder counts business outcomes. Implementations must be safe for concurrent use.
type MetricsRecorder interface {
	RecordLogin(ok bool)
	RecordRegistration()
	RecordRefresh(ok bool)
	RecordTransition(to string)
	RecordPropertyCreated()
}
