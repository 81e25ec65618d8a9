// Package classify sorts moveset files into processing classes by name.
//
// Classification is pure and total. Asset files are Processable unless their
// name carries a SCAR or equip/unequip marker, in which case they are copied
// through untouched. Sidecar text and config files are Support.
package classify
