// Package fieldset implements the repeatable field-group engine: the
// mechanism that lets a single logical form field expand into an ordered
// collection of independent, user-addable sub-records, each carrying its own
// child fields and attachment collections.
//
// The engine solves several interacting problems at once:
//
//   - Stable identity: every item carries a stable identifier that survives
//     reordering and deletion of sibling rows, while its ordinal position is
//     purely positional.
//
//   - Dynamic schema cloning: the child-field schema is declared once and
//     cloned per item, with each clone rebound to a path embedding the
//     item's ordinal and stable identifier.
//
//   - Two-phase persistence: attachment work depends on a parent identifier
//     that may not exist yet, so it is collected as typed DeferredActions
//     that the enclosing save workflow runs after the parent write, inside
//     the same transaction.
//
//   - Meaningful-data filtering: rows the user added but left empty are
//     silently dropped before validation, while minimum-count rules still
//     apply to the post-filter count.
//
// Everything here is request-scoped and synchronous. The Fieldset facade
// itself holds only the immutable schema and configuration; Renderer and
// RequestProcessor derive fresh Items on every call and retain no state.
package fieldset
