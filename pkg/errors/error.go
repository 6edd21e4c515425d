package errors

// ErrorCode represents a specific error code in the system.
type ErrorCode string

const (
	// GeneralInternalServerError represents a generic internal server error.
	GeneralInternalServerError ErrorCode = "general_internal_server_error"
	// GeneralBadRequestError represents a generic bad request error.
	GeneralBadRequestError ErrorCode = "general_bad_request_error"
	// GeneralNotFoundError represents a generic not found error.
	GeneralNotFoundError ErrorCode = "general_not_found_error"

	// SequenceGapError represents a delta whose prev_sequence does not match the book state.
	SequenceGapError ErrorCode = "sequence_gap_error"
	// ChecksumMismatchError represents a snapshot checksum that diverges from the rebuilt book.
	ChecksumMismatchError ErrorCode = "checksum_mismatch_error"
	// EventDecodeError represents a feed payload that could not be decoded into an event.
	EventDecodeError ErrorCode = "event_decode_error"
	// UnknownEventTypeError represents a feed envelope with an unrecognized event type tag.
	UnknownEventTypeError ErrorCode = "unknown_event_type_error"

	// SnapshotMarshalError represents a snapshot that could not be serialized.
	SnapshotMarshalError ErrorCode = "snapshot_marshal_error"
	// SnapshotUnmarshalError represents a persisted snapshot that could not be deserialized.
	SnapshotUnmarshalError ErrorCode = "snapshot_unmarshal_error"
	// SnapshotStoreError represents a failure storing a snapshot in Redis.
	SnapshotStoreError ErrorCode = "snapshot_store_error"
	// SnapshotLoadError represents a failure loading a snapshot from Redis.
	SnapshotLoadError ErrorCode = "snapshot_load_error"

	// RedisConfigError represents an error when the Redis configuration is invalid or nil.
	RedisConfigError ErrorCode = "redis_config_error"
	// RedisConnectionError represents an error when connecting to Redis.
	RedisConnectionError ErrorCode = "redis_connection_error"
	// RedisDisconnectionError represents an error when disconnecting from Redis.
	RedisDisconnectionError ErrorCode = "redis_disconnection_error"
	// RedisPingError represents an error when pinging Redis.
	RedisPingError ErrorCode = "redis_pinging_error"
	// RedisGetError represents an error when getting a value from Redis.
	RedisGetError ErrorCode = "redis_get_error"
	// RedisSetError represents an error when setting a value in Redis.
	RedisSetError ErrorCode = "redis_set_error"
	// RedisDelError represents an error when deleting a value from Redis.
	RedisDelError ErrorCode = "redis_del_error"

	// QuestDBConfigError represents an error when the QuestDB configuration is invalid.
	QuestDBConfigError ErrorCode = "questdb_config_error"
	// QuestDBExecError represents an error when executing a statement against QuestDB.
	QuestDBExecError ErrorCode = "questdb_exec_error"
)
