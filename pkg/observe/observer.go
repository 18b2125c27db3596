// Package observe defines the observer hooks the Trestle core reports
// through. The core calls an Observer but never requires one to exist;
// shells inject a logging implementation, tests inject a recorder.
package observe

// Observer receives notifications from the core. Implementations must not
// mutate the assembly from inside a callback.
type Observer interface {
	// OnAction reports a user-visible event: a committed connection, a
	// rejected plan, a snapshot restore.
	OnAction(action, detail string)

	// OnSolverStep reports the max constraint error after one relaxation
	// pass. Called once per pass, so implementations should be cheap.
	OnSolverStep(pass int, maxError float64)
}

type nopObserver struct{}

func (nopObserver) OnAction(string, string)   {}
func (nopObserver) OnSolverStep(int, float64) {}

// Nop returns an observer that ignores everything.
func Nop() Observer {
	return nopObserver{}
}
