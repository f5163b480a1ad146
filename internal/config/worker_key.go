package config

type WorkerKeyStruct struct{}

func NewWorkerKeyStruct() *WorkerKeyStruct {
	return &WorkerKeyStruct{}
}

// HistoryRetryQueue holds result payloads whose durable write failed and
// should be retried by the history worker.
func (r *WorkerKeyStruct) HistoryRetryQueueKey() string {
	return "persist_results_queue"
}

var WorkerKey = NewWorkerKeyStruct()
