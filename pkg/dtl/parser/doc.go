// Package parser loads decision tree files into their AST form.
//
// Tree files are YAML (or JSON, which parses as a YAML subset) with the
// recursive shape
//
//	question: "What is your diastolic blood pressure?"
//	branches:
//	  ">= 120": "Hypertensive crisis - Seek emergency care immediately"
//	  "< 120":
//	    question: "What is your systolic blood pressure?"
//	    branches:
//	      ">= 140": "Hypertension Stage 2 - Discuss medication with a clinician"
//	      "120-129": "Elevated blood pressure - Adopt heart-healthy lifestyle"
//	      "< 120": "Normal blood pressure - Maintain current healthy habits"
//
// String branch keys are parsed into condition keys: comparison
// operators (">= 120"), inclusive integer ranges ("120-129", which
// become membership lists), set membership ("in a, b, c"), and
// full-string regex matches ("matches ..."). Other scalar keys and
// unrecognized strings become literal keys compared by equality.
//
// Branch order in the source document is preserved; it is part of the
// tree's meaning. Parsing decodes through yaml.Node so mapping order
// and source line numbers survive.
//
// Predicate branch keys cannot be expressed in tree files; they are
// available only to trees constructed programmatically.
package parser
