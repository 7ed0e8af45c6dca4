package models

// SyncStage is the per-server state machine position during a sync run.
type SyncStage string

const (
	SyncStageStart             SyncStage = "start"
	SyncStageRolesProcessed    SyncStage = "roles_processed"
	SyncStageMembersProcessed  SyncStage = "members_processed"
	SyncStageChannelsProcessed SyncStage = "channels_processed"
	SyncStageThreadsProcessed  SyncStage = "threads_processed"
	SyncStageDone              SyncStage = "done"
	SyncStageFailed            SyncStage = "failed"
)

// ServerSyncResult summarizes one server's outcome within a sync run. A failed
// server records the stage it was in when the error occurred; siblings are
// unaffected.
type ServerSyncResult struct {
	ServerExternalID string
	ServerName       string
	Stage            SyncStage
	FailedStage      SyncStage
	Err              error

	ChannelsSynced  int
	ChannelsSkipped int
	ThreadsSynced   int
	ThreadsSkipped  int
	MessagesSynced  int
}

// Failed returns true if the server's sync terminated in the failed state.
func (r *ServerSyncResult) Failed() bool {
	return r.Stage == SyncStageFailed
}
