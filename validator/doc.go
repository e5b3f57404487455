// Package validator performs the pre-execution textual scan of student code.
//
// The scan is a cheap first filter, not a security boundary: it rejects
// source that visibly reaches for process, OS, file or dynamic-evaluation
// capabilities before any process is spawned. Isolation of the guest process
// (package sandbox) is the enforcement layer.
//
// Usage:
//
//	v := validator.New(validator.DefaultRules(), validator.DefaultMaxSourceBytes)
//	res := v.Validate(code)
//	if !res.Valid {
//	    fmt.Println(res.Error)
//	}
package validator
