// Package logging provides structured logging for council.
//
// It wraps log/slog with a JSON handler. Child loggers carry persistent
// attributes for the conversation, the consulted role and the turn state:
//
//	logger, err := logging.NewLogger(dir, logging.LevelInfo)
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	turnLog := logger.WithConversation(convID).WithState("SELECT_ROLES")
//	turnLog.Debug("roles selected", "rule", "opinion", "roles", ids)
//
// produces lines such as
//
//	{"time":"...","level":"DEBUG","msg":"roles selected","conversation_id":"...","state":"SELECT_ROLES","rule":"opinion","roles":["engineer","planner"]}
//
// [NewLoggerWithRotation] rotates the file by size, keeping numbered backups
// that may be gzip compressed. [ReadFile] and [Filter] parse a log file back
// for the logs command.
//
// All types are safe for concurrent use.
package logging
