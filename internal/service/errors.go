package service

import "errors"

var (
	ErrNoSource          = errors.New("no data source is open")
	ErrPathConfigured    = errors.New("path is already a column")
	ErrPathNotConfigured = errors.New("path is not a column")
	ErrCannotMove        = errors.New("column cannot move further")
	ErrNoPrimaryKey      = errors.New("no primary key is set")
	ErrNothingSelected   = errors.New("no rows are selected")
	ErrRecordNotFound    = errors.New("no record with that primary key")
	ErrNothingToUndo     = errors.New("nothing to undo")
	ErrNothingToRedo     = errors.New("nothing to redo")
	ErrSourceChanged     = errors.New("active source changed")
	ErrInvalidSchedule   = errors.New("invalid refresh schedule")
)
