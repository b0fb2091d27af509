// Package rtm is the runtime support imported by wrappers that rtwbind
// generates. It owns the pieces of the wrapper contract that do not depend
// on a particular model: the single-instance lease over process-wide native
// storage, the per-call borrow of wrapper-owned state, the kind-tagged views
// over native arrays and the infinite stepping sequence.
package rtm
