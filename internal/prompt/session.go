package prompt

import (
	"abcalc/domain/abtest"
)

// Defaults fills the inputs the sample-size session does not ask for.
type Defaults struct {
	EqualVariance bool
}

// SignificanceSession asks for the inputs of a two-proportion z-test in the
// order an analyst reads them off a dashboard: alpha, then each arm's totals
// and successes, then the test options.
func SignificanceSession(p *Prompter) (abtest.SignificanceRequest, error) {
	var req abtest.SignificanceRequest
	var err error

	if req.Config.Alpha, err = p.Float("What is your significance level (e.g. 0.05, 0.01)?",
		Between("significance level", 0, 1)); err != nil {
		return req, err
	}
	if req.Control, err = askSample(p, "control"); err != nil {
		return req, err
	}
	if req.Experiment, err = askSample(p, "experiment"); err != nil {
		return req, err
	}
	if req.Config.TwoSided, err = askTwoSided(p); err != nil {
		return req, err
	}

	choice, err := p.Choice("Is there equal variance between two groups? \nchoose 1=yes, 2=no", []string{"1", "2"})
	if err != nil {
		return req, err
	}
	req.Config.EqualVariance = choice == "1"

	return req, nil
}

func askSample(p *Prompter, group string) (abtest.BinomialSample, error) {
	var s abtest.BinomialSample
	var err error

	if s.Total, err = p.Int("What is the total number of events in "+group+" group?",
		Positive[int]("total number of events")); err != nil {
		return s, err
	}
	if s.Successes, err = p.Int("What is the number of success in "+group+" group?",
		NonNegative[int]("number of success"), AtMost("number of success", s.Total)); err != nil {
		return s, err
	}
	return s, nil
}

func askTwoSided(p *Prompter) (bool, error) {
	choice, err := p.Choice("Is your experiment one-sided or two-sided? \nchoose 1=one-sided, 2=two-sided", []string{"1", "2"})
	if err != nil {
		return false, err
	}
	return choice == "2", nil
}

// SampleSizeSession asks for alpha, power and sidedness, then for the metric
// type and the inputs that metric's variance estimate needs.
func SampleSizeSession(p *Prompter, defaults Defaults) (abtest.SampleSizeRequest, error) {
	var req abtest.SampleSizeRequest
	var err error

	if req.Alpha, err = p.Float("What is your significance level (e.g. 0.05, 0.01)?",
		Between("significance level", 0, 1)); err != nil {
		return req, err
	}
	if req.Power, err = p.Float("What is your power (e.g. 0.8)?",
		Between("power", 0, 1)); err != nil {
		return req, err
	}
	if req.TwoSided, err = askTwoSided(p); err != nil {
		return req, err
	}

	option, err := p.Choice("Is your metric proportion (e.g. click-through rate) or mean(e.g. average expense)? \n"+
		"choose 1=proportion, 2=mean, 3=other", []string{"1", "2", "3"})
	if err != nil {
		return req, err
	}
	if req.Strategy, err = abtest.ParseVarianceStrategy(option); err != nil {
		return req, err
	}

	switch req.Strategy {
	case abtest.StrategyProportion:
		req.EqualVariance = defaults.EqualVariance
		if req.Baseline, err = p.Float("What is your baseline?", Within("baseline", 0, 1)); err != nil {
			return req, err
		}
		if req.Delta, err = askDelta(p); err != nil {
			return req, err
		}
		if req.Ratio, err = askRatio(p); err != nil {
			return req, err
		}
	case abtest.StrategyMean:
		std, err := p.Float("Please provide sample standard deviation", Positive[float64]("standard deviation"))
		if err != nil {
			return req, err
		}
		req.StdDev = &std
		if req.Delta, err = askDelta(p); err != nil {
			return req, err
		}
		if req.Ratio, err = askRatio(p); err != nil {
			return req, err
		}
	case abtest.StrategyEmpirical:
		if req.Delta, err = askDelta(p); err != nil {
			return req, err
		}
		if req.DeltaSE, err = p.Float("Please provide empirical standard error of mean difference from AA test",
			Positive[float64]("standard error")); err != nil {
			return req, err
		}
		if req.AANum1, err = p.Int("Please provide number of data points in group 1 of AA test",
			Positive[int]("number of data points")); err != nil {
			return req, err
		}
		if req.AANum2, err = p.Int("Please provide number of data points in group 2 of AA test",
			Positive[int]("number of data points")); err != nil {
			return req, err
		}
	}

	return req, nil
}

func askDelta(p *Prompter) (float64, error) {
	return p.Float("What is your minimum detectable effect?", NonZero("minimum detectable effect"))
}

func askRatio(p *Prompter) (float64, error) {
	return p.Float("What is the ratio between experiment group : control group?", Positive[float64]("ratio"))
}
