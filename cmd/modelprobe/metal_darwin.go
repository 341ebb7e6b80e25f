//go:build darwin

package main

import (
	"fmt"

	"github.com/tsawler/go-metal/checkpoints"
)

// probeMetal reports whether go-metal can import the model for Metal training
func probeMetal(modelPath string) {
	fmt.Println("\nAttempting to import with go-metal...")
	checkpoint, err := checkpoints.NewONNXImporter().ImportFromONNX(modelPath)
	if err != nil {
		fmt.Printf("go-metal cannot import this model: %v\n", err)
		fmt.Println("go-metal supports Conv, MatMul, Add, Relu, LeakyRelu, Sigmoid, Tanh,")
		fmt.Println("BatchNorm, Dropout, Softmax and Flatten only.")
		return
	}

	fmt.Printf("✓ go-metal imported %d layers, %d weight tensors\n",
		len(checkpoint.ModelSpec.Layers), len(checkpoint.Weights))
	for i, layer := range checkpoint.ModelSpec.Layers {
		fmt.Printf("  %d: %s (%s)\n", i+1, layer.Name, layer.Type)
	}
}
