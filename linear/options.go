package linear

import "github.com/YuminosukeSato/estimator/core/model"

// Option is a function that configures LinearRegression
type Option func(*LinearRegression)

// WithFitIntercept sets whether to calculate the intercept
func WithFitIntercept(fit bool) Option {
	return func(lr *LinearRegression) {
		lr.fitIntercept = fit
	}
}

// WithBaseOptions passes options such as the logger to the embedded BaseEstimator.
func WithBaseOptions(opts ...model.Option) Option {
	return func(lr *LinearRegression) {
		lr.baseOpts = append(lr.baseOpts, opts...)
	}
}
