package trace

// Compose merges two Driver traces into one that calls both.
func (t *Driver) Compose(x *Driver) *Driver {
	ret := *t
	if x == nil {
		return &ret
	}
	{
		h1, h2 := t.OnExecute, x.OnExecute
		ret.OnExecute = func(info DriverExecuteStartInfo) func(DriverExecuteDoneInfo) {
			var d1, d2 func(DriverExecuteDoneInfo)
			if h1 != nil {
				d1 = h1(info)
			}
			if h2 != nil {
				d2 = h2(info)
			}

			return func(info DriverExecuteDoneInfo) {
				if d1 != nil {
					d1(info)
				}
				if d2 != nil {
					d2(info)
				}
			}
		}
	}
	{
		h1, h2 := t.OnListTableNames, x.OnListTableNames
		ret.OnListTableNames = func(info DriverListTableNamesStartInfo) func(DriverListTableNamesDoneInfo) {
			var d1, d2 func(DriverListTableNamesDoneInfo)
			if h1 != nil {
				d1 = h1(info)
			}
			if h2 != nil {
				d2 = h2(info)
			}

			return func(info DriverListTableNamesDoneInfo) {
				if d1 != nil {
					d1(info)
				}
				if d2 != nil {
					d2(info)
				}
			}
		}
	}
	{
		h1, h2 := t.OnClose, x.OnClose
		ret.OnClose = func(info DriverCloseStartInfo) func(DriverCloseDoneInfo) {
			var d1, d2 func(DriverCloseDoneInfo)
			if h1 != nil {
				d1 = h1(info)
			}
			if h2 != nil {
				d2 = h2(info)
			}

			return func(info DriverCloseDoneInfo) {
				if d1 != nil {
					d1(info)
				}
				if d2 != nil {
					d2(info)
				}
			}
		}
	}

	return &ret
}

// Compose merges two Pool traces into one that calls both.
func (t *Pool) Compose(x *Pool) *Pool {
	ret := *t
	if x == nil {
		return &ret
	}
	{
		h1, h2 := t.OnGet, x.OnGet
		ret.OnGet = func(info PoolGetStartInfo) func(PoolGetDoneInfo) {
			var d1, d2 func(PoolGetDoneInfo)
			if h1 != nil {
				d1 = h1(info)
			}
			if h2 != nil {
				d2 = h2(info)
			}

			return func(info PoolGetDoneInfo) {
				if d1 != nil {
					d1(info)
				}
				if d2 != nil {
					d2(info)
				}
			}
		}
	}
	{
		h1, h2 := t.OnPut, x.OnPut
		ret.OnPut = func(info PoolPutStartInfo) func(PoolPutDoneInfo) {
			var d1, d2 func(PoolPutDoneInfo)
			if h1 != nil {
				d1 = h1(info)
			}
			if h2 != nil {
				d2 = h2(info)
			}

			return func(info PoolPutDoneInfo) {
				if d1 != nil {
					d1(info)
				}
				if d2 != nil {
					d2(info)
				}
			}
		}
	}
	{
		h1, h2 := t.OnChange, x.OnChange
		switch {
		case h1 == nil:
			ret.OnChange = h2
		case h2 == nil:
			ret.OnChange = h1
		default:
			ret.OnChange = func(info PoolChangeInfo) {
				h1(info)
				h2(info)
			}
		}
	}
	{
		h1, h2 := t.OnClose, x.OnClose
		ret.OnClose = func(info PoolCloseStartInfo) func(PoolCloseDoneInfo) {
			var d1, d2 func(PoolCloseDoneInfo)
			if h1 != nil {
				d1 = h1(info)
			}
			if h2 != nil {
				d2 = h2(info)
			}

			return func(info PoolCloseDoneInfo) {
				if d1 != nil {
					d1(info)
				}
				if d2 != nil {
					d2(info)
				}
			}
		}
	}

	return &ret
}

// Compose merges two Session traces into one that calls both.
func (t *Session) Compose(x *Session) *Session {
	ret := *t
	if x == nil {
		return &ret
	}
	{
		h1, h2 := t.OnCommand, x.OnCommand
		ret.OnCommand = func(info SessionCommandStartInfo) func(SessionCommandDoneInfo) {
			var d1, d2 func(SessionCommandDoneInfo)
			if h1 != nil {
				d1 = h1(info)
			}
			if h2 != nil {
				d2 = h2(info)
			}

			return func(info SessionCommandDoneInfo) {
				if d1 != nil {
					d1(info)
				}
				if d2 != nil {
					d2(info)
				}
			}
		}
	}

	return &ret
}

// Compose merges two Retry traces into one that calls both.
func (t *Retry) Compose(x *Retry) *Retry {
	ret := *t
	if x == nil {
		return &ret
	}
	{
		h1, h2 := t.OnRetry, x.OnRetry
		ret.OnRetry = func(info RetryLoopStartInfo) func(RetryLoopAttemptInfo) func(RetryLoopDoneInfo) {
			var a1, a2 func(RetryLoopAttemptInfo) func(RetryLoopDoneInfo)
			if h1 != nil {
				a1 = h1(info)
			}
			if h2 != nil {
				a2 = h2(info)
			}

			return func(info RetryLoopAttemptInfo) func(RetryLoopDoneInfo) {
				var d1, d2 func(RetryLoopDoneInfo)
				if a1 != nil {
					d1 = a1(info)
				}
				if a2 != nil {
					d2 = a2(info)
				}

				return func(info RetryLoopDoneInfo) {
					if d1 != nil {
						d1(info)
					}
					if d2 != nil {
						d2(info)
					}
				}
			}
		}
	}

	return &ret
}
