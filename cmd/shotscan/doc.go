// Command shotscan detects shot boundaries from stored per-frame feature
// vectors.
//
// Feature dumps are loaded with `shotscan import`, and `shotscan detect` runs
// the multi-rate distance engine, the adaptive candidate filter, and the
// merge stage for each stored stream, writing boundary lists to the output
// directory. `distances` runs only the engine stage, `store` inspects and
// prunes the feature database, and `config` manages the TOML configuration.
package main
