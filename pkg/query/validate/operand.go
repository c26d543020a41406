/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package validate

import (
	"context"

	"github.com/dburkart/jql/pkg/catalog"
	"github.com/dburkart/jql/pkg/query/clause"
	"github.com/dburkart/jql/pkg/query/message"
)

// validateOperand validates the functions in operand against field and
// warns about values repeated in a list.
func validateOperand(ctx context.Context, functions *FunctionRegistry, user *catalog.User, field *Field, clauseName string, operand clause.Operand) *message.Set {
	messages := message.New()
	for _, fn := range Functions(operand) {
		messages.AddSet(functions.Validate(ctx, user, field, clauseName, fn))
	}

	if _, isList := operand.(clause.MultiValueOperand); !isList {
		return messages
	}
	seen := make(map[string]int)
	for _, l := range Values(operand) {
		folded := catalog.Fold(l.Value())
		seen[folded]++
		if seen[folded] == 2 {
			messages.AddWarning(KeyDuplicateValue, l.Value(), clauseName)
		}
	}
	return messages
}
