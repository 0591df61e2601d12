package config

type WorkerKeyStruct struct {
	PersistScoresQueue string
	AuditEventsQueue   string
}

var WorkerKey = &WorkerKeyStruct{
	PersistScoresQueue: "persist_scores_queue",
	AuditEventsQueue:   "audit_events_queue",
}
