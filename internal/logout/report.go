package logout

import (
	"errors"
	"fmt"
	"log"
)

// ErrNoDeviceToken is reported when deregistration has no token to send.
var ErrNoDeviceToken = errors.New("no device token")

// Step names, in pipeline order.
const (
	StepTeardownObservers     = "teardown_observers"
	StepDeregisterDevice      = "deregister_device"
	StepResetBadge            = "reset_badge"
	StepRemoveSession         = "remove_session"
	StepClearHistory          = "clear_history"
	StepRemoveMessagingKeys   = "remove_messaging_keys"
	StepClearPolicyCache      = "clear_policy_cache"
	StepRemoveDomainCaches    = "remove_domain_caches"
	StepRemoveStudentAccounts = "remove_student_accounts"
	StepRemoveDeviceToken     = "remove_device_token"
	StepSweepKeys             = "sweep_keys"

	StepDeregisterStudent = "deregister_student_device"
	StepRemoveStudentKeys = "remove_student_keys"
	StepFilterHistory     = "filter_history"
	StepSweepStudentKeys  = "sweep_student_keys"
	StepUnlinkStudent     = "unlink_student"
)

// StepResult is the outcome of one cleanup step.
type StepResult struct {
	Name    string `json:"name"`
	Skipped bool   `json:"skipped,omitempty"`
	Err     error  `json:"-"`
	Error   string `json:"error,omitempty"`
}

// Report lists every step in the order it ran.
type Report struct {
	Steps []StepResult `json:"steps"`
}

func (r *Report) run(name string, fn func() error) {
	res := StepResult{Name: name}
	if err := fn(); err != nil {
		log.Printf("[Logout] Step %s failed: %v", name, err)
		res.Err = err
		res.Error = err.Error()
	}
	r.Steps = append(r.Steps, res)
}

func (r *Report) skip(name string) {
	r.Steps = append(r.Steps, StepResult{Name: name, Skipped: true})
}

// Failed returns the steps that returned an error.
func (r Report) Failed() []StepResult {
	var out []StepResult
	for _, s := range r.Steps {
		if s.Err != nil {
			out = append(out, s)
		}
	}
	return out
}

// Step returns the result of the named step.
func (r Report) Step(name string) (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return StepResult{}, false
}

// Err joins the errors of all failed steps, or is nil.
func (r Report) Err() error {
	var errs []error
	for _, s := range r.Failed() {
		errs = append(errs, fmt.Errorf("%s: %w", s.Name, s.Err))
	}
	return errors.Join(errs...)
}
