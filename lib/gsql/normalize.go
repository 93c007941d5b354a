package gsql

// Normalize exposes the original cause of err regardless of the wrapper
// layers inserted by the transaction bridges. While err is a bare
// *DataAccessError carrying one of the bridge messages, one level is
// unwrapped; a wrapper with no cause at all yields a fresh "Rollback caused"
// wrapper around the original error so callers always get something
// non-nil.
func Normalize(err error) error {
	if err == nil {
		return nil
	}

	original := err
	for {
		dae, ok := err.(*DataAccessError)
		if !ok {
			return err
		}
		if dae.Message != MessageRollbackCaused && dae.Message != MessageBlockingPublisher {
			return err
		}
		if dae.Cause == nil {
			return &DataAccessError{
				Message: MessageRollbackCaused,
				Cause:   original,
			}
		}
		err = dae.Cause
	}
}
