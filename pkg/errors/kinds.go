package errors

func InvalidPath(err error, path string) error {
	return newError(ErrInvalidPath, err, "invalid path '%s'", path)
}

func NotAFile(path string) error {
	return newError(ErrInvalidPath, nil, "path '%s' is a directory, use a collection instead", path)
}

func NotADirectory(path string) error {
	return newError(ErrInvalidPath, nil, "path '%s' is not a directory, use a file instead", path)
}

func KeyNotFound(key string) error {
	return newError(ErrKeyNotFound, nil, "metadata key '%s' not found", key)
}

func UnsupportedOperand(op string, operand any) error {
	return newError(ErrUnsupportedOperand, nil, "unsupported operand %T for %s", operand, op)
}

func Persistence(err error, format string, args ...any) error {
	return newError(ErrPersistence, err, format, args...)
}

func ReadOnly(op string) error {
	return newError(ErrPersistence, nil, "%s rejected, store is configured read-only", op)
}

func InconsistentRecord(id string) error {
	return newError(ErrInconsistentRecord, nil,
		"record '%s' has no path, the store is in an inconsistent state; ensure every record has an associated path", id)
}
