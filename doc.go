// Package gozero wires the board, mcts, nn and timecontrol packages into
// an Engine: the top-level object a GTP-style frontend drives. It owns no
// search or board logic of its own — everything here is orchestration:
// Config bundles the sub-configs, Engine holds the live objects, and
// Close aggregates sub-component shutdown errors via multierror.
//
// Training a network from self-play games is out of scope: Engine only
// ever loads pretrained weights and searches with them.
package gozero
