package lib

import "errors"

// BadUserInputError marks failures caused by invalid user-provided values
// (config, image refs, prompts) as opposed to infrastructure failures.
var BadUserInputError = errors.New("bad user input")
