package evm

// contractABI — ABI контракта реестра продуктов.
const contractABI = `[
  {
    "type": "function",
    "name": "addProduct",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "productId", "type": "string"},
      {"name": "name", "type": "string"}
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "verifyProduct",
    "stateMutability": "view",
    "inputs": [
      {"name": "productId", "type": "string"}
    ],
    "outputs": [
      {"name": "name", "type": "string"},
      {"name": "isFake", "type": "bool"}
    ]
  },
  {
    "type": "function",
    "name": "markAsFake",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "productId", "type": "string"}
    ],
    "outputs": []
  },
  {
    "type": "event",
    "name": "ProductAdded",
    "anonymous": false,
    "inputs": [
      {"name": "productId", "type": "string", "indexed": false},
      {"name": "name", "type": "string", "indexed": false},
      {"name": "manufacturer", "type": "address", "indexed": true}
    ]
  },
  {
    "type": "event",
    "name": "ProductStatusUpdated",
    "anonymous": false,
    "inputs": [
      {"name": "productId", "type": "string", "indexed": false},
      {"name": "isFake", "type": "bool", "indexed": false},
      {"name": "admin", "type": "address", "indexed": true}
    ]
  }
]`

// Имена методов контракта.
const (
	methodAdd    = "addProduct"
	methodVerify = "verifyProduct"
	methodFlag   = "markAsFake"
)
