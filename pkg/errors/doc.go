// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeInfeasibleModel,
//	    "group 2 has no feasible ration",
//	    cause,
//	    map[string]interface{}{
//	        "group":       2,
//	        "constraints": names,
//	    },
//	)
package errors
