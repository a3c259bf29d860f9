/*
Package assert provides runtime assertion support for checking invariants without taking the program down.

There are a few patterns that are supported:
  - Assertions that log a failure through [log/slog] and report the result, so the caller can bail out.
  - Escalating failed assertions to panics with [Fatal], which is most useful in tests.
  - Marking unreachable code with [Never], which always panics.
  - Collecting many possible errors into one with a [Collector].
  - Removal of assertion logging with a build flag to maintain runtime performance.

To turn off assertion logging build with the 'noassert' flag.
Note that [True] and [TrueFunc] still return the evaluated condition in that case, since callers rely on it to guard the following code.
*/
package assert
