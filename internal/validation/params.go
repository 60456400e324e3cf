package validation

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"abcalc/domain/abtest"
	"abcalc/internal/errors"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	// Report fields by their JSON names so messages match the CLI flags and reports.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// Significance checks the inputs of a two-proportion z-test.
func Significance(req abtest.SignificanceRequest) error {
	if err := validate.Struct(req); err != nil {
		return translate(err)
	}
	return nil
}

// SampleSize checks the common inputs and then the fields read by req.Strategy.
func SampleSize(req abtest.SampleSizeRequest) error {
	if err := validate.Struct(req); err != nil {
		return translate(err)
	}
	if err := finite("delta", req.Delta); err != nil {
		return err
	}

	switch req.Strategy {
	case abtest.StrategyProportion:
		if err := ratio(req.Ratio); err != nil {
			return err
		}
		if err := field("baseline", req.Baseline, "gte=0,lte=1"); err != nil {
			return err
		}
		if prop2 := req.Baseline + req.Delta; prop2 < 0 || prop2 > 1 {
			return errors.InvalidArgumentf("delta",
				"baseline + delta must stay within [0, 1], got %g + %g = %g", req.Baseline, req.Delta, prop2)
		}
	case abtest.StrategyMean:
		if req.StdDev == nil {
			return errors.InvalidArgument("std_dev", "is required for the mean metric")
		}
		if err := field("std_dev", *req.StdDev, "gt=0"); err != nil {
			return err
		}
		if err := finite("std_dev", *req.StdDev); err != nil {
			return err
		}
		if err := ratio(req.Ratio); err != nil {
			return err
		}
	case abtest.StrategyEmpirical:
		if err := field("delta_se", req.DeltaSE, "gt=0"); err != nil {
			return err
		}
		if err := finite("delta_se", req.DeltaSE); err != nil {
			return err
		}
		if err := field("aa_num1", req.AANum1, "gt=0"); err != nil {
			return err
		}
		if err := field("aa_num2", req.AANum2, "gt=0"); err != nil {
			return err
		}
	default:
		return errors.InvalidArgumentf("strategy", "unknown variance strategy %s", req.Strategy)
	}
	return nil
}

// Config checks a struct carrying validate tags, such as the CLI defaults.
func Config(cfg interface{}) error {
	if err := validate.Struct(cfg); err != nil {
		return errors.ConfigInvalid(translate(err).Error())
	}
	return nil
}

// ratio accepts allocation ratios whose reciprocal is also a finite number.
func ratio(r float64) error {
	if err := field("ratio", r, "gt=0"); err != nil {
		return err
	}
	if err := finite("ratio", r); err != nil {
		return err
	}
	if math.IsInf(1/r, 0) {
		return errors.InvalidArgumentf("ratio", "%g is too small, 1/ratio overflows", r)
	}
	return nil
}

func finite(name string, v float64) error {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return errors.InvalidArgumentf(name, "must be finite, got %v", v)
	}
	return nil
}

func field(name string, value interface{}, tag string) error {
	if err := validate.Var(value, tag); err != nil {
		var fieldErrs validator.ValidationErrors
		if ok := asValidationErrors(err, &fieldErrs); ok && len(fieldErrs) > 0 {
			return errors.InvalidArgument(name, describe(fieldErrs[0], value))
		}
		return errors.InvalidArgument(name, err.Error())
	}
	return nil
}

// translate turns the first validator failure into an InvalidArgument error.
func translate(err error) *errors.AppError {
	var fieldErrs validator.ValidationErrors
	if !asValidationErrors(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errors.InvalidArgument("", err.Error())
	}
	fe := fieldErrs[0]
	return errors.InvalidArgument(fieldPath(fe), describe(fe, fe.Value()))
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = fieldErrs
	}
	return ok
}

// fieldPath drops the root struct name: "SignificanceRequest.control.total" -> "control.total".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError, value interface{}) string {
	switch fe.Tag() {
	case "gt":
		return fmt.Sprintf("must be > %s, got %v", fe.Param(), value)
	case "gte":
		return fmt.Sprintf("must be >= %s, got %v", fe.Param(), value)
	case "lt":
		return fmt.Sprintf("must be < %s, got %v", fe.Param(), value)
	case "lte":
		return fmt.Sprintf("must be <= %s, got %v", fe.Param(), value)
	case "ltefield":
		return fmt.Sprintf("must be <= %s, got %v", strings.ToLower(fe.Param()), value)
	case "ne":
		return fmt.Sprintf("must not be %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %v", fe.Param(), value)
	case "required":
		return "is required"
	default:
		return fmt.Sprintf("failed %q check, got %v", fe.Tag(), value)
	}
}
